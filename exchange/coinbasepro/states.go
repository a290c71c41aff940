package coinbasepro

type state int

const (
	disconnected state = iota // The feed has not yet attempted to connect to the websocket API.
	connecting                // The feed is dialing the websocket API.
	connected                 // The feed has connected and sent its subscription.
	subscribed                // The websocket API has acknowledged the subscription and ticker messages are being delivered.
)

func (o state) String() string {
	return [...]string{"disconnected", "connecting", "connected", "subscribed"}[o]
}
