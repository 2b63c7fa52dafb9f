package main

import "github.com/nguyentantai21042004/media-digest/cmd"

func main() {
	cmd.Execute()
}
