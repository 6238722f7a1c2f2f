package bus

// Arbiter grants one of N requester ports access to a shared
// Responder per cycle, by fixed priority (port 0 highest), holding the
// grant for the duration of a requester's Cyc assertion so a burst
// isn't interrupted mid-flight. Grounded on minerva's
// arbiter: a requester's single-bit isolation out of the pending-request
// mask is req &^ (req-1), the lowest set bit, with port 0 occupying
// the mask's low bit so it naturally wins ties.
type Arbiter struct {
	responder Responder
	ports     int
	granted   int // -1 when idle
}

// NewArbiter builds an arbiter over ports requester ports driving a
// single responder.
func NewArbiter(responder Responder, ports int) *Arbiter {
	return &Arbiter{responder: responder, ports: ports, granted: -1}
}

// Grant selects which port may drive the bus this cycle, given a
// bitmask of ports currently asserting Cyc. A port already mid-burst
// keeps its grant until it drops Cyc, even if a higher-priority port
// starts requesting in the meantime.
func (a *Arbiter) Grant(requesting uint32) int {
	if a.granted >= 0 && requesting&(1<<uint(a.granted)) != 0 {
		return a.granted
	}

	if requesting == 0 {
		a.granted = -1
		return -1
	}

	lowest := requesting &^ (requesting - 1)
	port := 0
	for lowest != 1 {
		lowest >>= 1
		port++
	}

	a.granted = port
	return port
}

// Step forwards req to the responder if port currently holds the
// grant; otherwise it returns a transaction with Ack/Err clear and Stb
// deasserted, the Wishbone idiom for "not your turn yet".
func (a *Arbiter) Step(port int, requesting uint32, req Transaction) Transaction {
	if a.Grant(requesting) != port {
		return Transaction{}
	}
	return a.responder.Step(req)
}
