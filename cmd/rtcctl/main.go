// Command rtcctl reads and sets a DS1339 real-time clock attached to a Linux
// host, and can bridge it to an MQTT broker.
package main

func main() {
	Execute()
}
