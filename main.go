package main

import "github.com/gregdeon/cluster-utils/cmd"

func main() {
	cmd.Execute()
}
