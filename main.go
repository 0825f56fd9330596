/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/servana/eventrelay/cmd"

func main() {
	cmd.Execute()
}
