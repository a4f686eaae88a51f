/*
Copyright © 2025 Equilab
*/
package main

import "github.com/equilab/microbiome-prep/cmd"

func main() {
	cmd.Execute()
}
