// Package main provides the CLI entrypoint for devping.
package main

func main() {
	Execute()
}
