/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import "github.com/josephgoksu/taskmate/cmd"

func main() {
	cmd.Execute()
}
