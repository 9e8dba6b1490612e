// Package main provides the entry point for the market crawler CLI.
package main

func main() {
	Execute()
}
