// hookgate gates AI coding assistant actions at two lifecycle points:
// shell commands before they run, and user requests before implementation.
package main

import "github.com/ppiankov/hookgate/internal/cli"

func main() {
	cli.Execute()
}
