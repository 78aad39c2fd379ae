package types

// SlotID is the unique identifier of one evaluation slot reported by the intra
type SlotID string

// String returns the string representation of SlotID
func (x SlotID) String() string {
	return string(x)
}
