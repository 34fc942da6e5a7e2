// taskgate runs plain-English file tasks inside a sandboxed data root.
package main

import "github.com/ppiankov/taskgate/internal/cli"

func main() {
	cli.Execute()
}
