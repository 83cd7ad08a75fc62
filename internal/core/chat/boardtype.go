package chat

type boardKind int

const (
	kindNone boardKind = iota
	kindNotify
	kindWatch
)

// BoardType is how a user follows a board: Notify, Watch or, as the zero
// value, not at all. Both variants carry the store subscription ID.
type BoardType struct {
	kind           boardKind
	subscriptionID string
}

func Notify(subscriptionID string) BoardType {
	return BoardType{kind: kindNotify, subscriptionID: subscriptionID}
}

func Watch(subscriptionID string) BoardType {
	return BoardType{kind: kindWatch, subscriptionID: subscriptionID}
}

// SubscriptionID returns the subscription of a Notify or Watch type.
func (t BoardType) SubscriptionID() (string, bool) {
	switch t.kind {
	case kindNotify, kindWatch:
		return t.subscriptionID, true
	default:
		return "", false
	}
}

func (t BoardType) IsNotify() bool { return t.kind == kindNotify }
func (t BoardType) IsWatch() bool { return t.kind == kindWatch }
func (t BoardType) IsNone() bool { return t.kind == kindNone }

func (t BoardType) String() string {
	switch t.kind {
	case kindNotify:
		return "notify"
	case kindWatch:
		return "watch"
	default:
		return "none"
	}
}
