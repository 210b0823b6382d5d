package main

import "github.com/frahmantamala/personal-ledger/cmd"

func main() {
	cmd.Execute()
}
