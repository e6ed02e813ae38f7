// The main package for the boxoffice executable.
package main

import "github.com/JakeFAU/boxoffice-crawler/cmd"

func main() {
	cmd.Execute()
}
