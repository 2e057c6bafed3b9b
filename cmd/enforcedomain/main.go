package main

import "go.minekube.com/enforcedomain/pkg/cmd/enforcedomain"

func main() {
	enforcedomain.Execute()
}
