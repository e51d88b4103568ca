package main

import "fmt"

// TravelMode selects how a client travel address is interpreted
type TravelMode uint8

const (
	// TravelAbsolute replaces the current world with the one at address
	TravelAbsolute TravelMode = iota
	// TravelRelative keeps the current connection and changes map only
	TravelRelative
)

func (m TravelMode) String() string {
	switch m {
	case TravelAbsolute:
		return "absolute"
	case TravelRelative:
		return "relative"
	}
	return fmt.Sprintf("travel(%d)", uint8(m))
}

// WorldTravel moves this machine between worlds
type WorldTravel interface {
	// ServerTravel moves the hosted world, and everyone in it, to route
	ServerTravel(route string) error
	// ClientTravel leaves the current world and connects to address
	ClientTravel(address string, mode TravelMode) error
}
