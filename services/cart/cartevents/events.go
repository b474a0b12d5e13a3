package cartevents

const (
	TopicName       = "cart"
	cartChangedName = TopicName + ".changed"
)

// CartChanged is a broadcast without further payload: observers re-read the cart.
type CartChanged struct {
	TenantUID string
	Gateway   string
}

func (e CartChanged) GetEventTypeName() string {
	return cartChangedName
}

func (e CartChanged) GetAggregateName() string {
	return e.TenantUID + "/" + e.Gateway
}
