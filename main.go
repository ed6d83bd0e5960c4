package main

import "jobsite-timeclock/internal/cli"

func main() {
	cli.Execute()
}
