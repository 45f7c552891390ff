package main

import "locale-uploader/internal/cli"

func main() {
	cli.Execute()
}
