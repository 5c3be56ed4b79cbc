// Command netsim runs discrete-event network simulations described by
// scenario files.
package main

import "github.com/sarchlab/netsim/netsim/cmd"

func main() {
	cmd.Execute()
}
