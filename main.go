package main

import "github.com/xgui3783/ebrains-util/cmd"

func main() {
	cmd.Execute()
}
