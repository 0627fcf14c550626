package main

import "admin-rbac/cmd"

func main() {
	cmd.Execute()
}
