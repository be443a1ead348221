package main

import "github.com/nguyentranbao-ct/smart-cart/cmd"

func main() {
	cmd.Execute()
}
