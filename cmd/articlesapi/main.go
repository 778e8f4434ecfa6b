package main

import "github.com/terraconstructs/articles/cmd/articlesapi/cmd"

func main() {
	cmd.Execute()
}
