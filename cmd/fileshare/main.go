package main

import "github.com/ArteenM/File-Sharing/internal/cli"

func main() {
	cli.Execute()
}
