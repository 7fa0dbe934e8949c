package main

import "excelEvidence/cmd"

func main() {
	cmd.Execute()
}
