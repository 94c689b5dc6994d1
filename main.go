package main

import "inventory-ledger/cmd"

func main() {
	cmd.Execute()
}
