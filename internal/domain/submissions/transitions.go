package submissions

var order = map[Status]int{
	StatusNew:       0,
	StatusInReview:  1,
	StatusContacted: 2,
	StatusClosed:    3,
}

// CanTransition: avanza de a un paso, closed es alcanzable desde cualquier
// estado y repetir el estado actual es un no-op válido.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to || to == StatusClosed {
		return true
	}
	return order[to] == order[from]+1
}
