// Package tunnel describes a reverse ssh tunnel and builds the ssh client
// invocation that establishes it.
//
// [Config] is validated once at startup and then passed by value. [BuildCommand]
// turns it into the argument vector handed to the ssh client; the vector is never
// joined into a shell string.
package tunnel
