package fabric

import "fmt"

// ipAllocator hands out the management /24 and per-link /24 subnets by a
// monotonic counter. Grounded on p2p/identity.go's deterministic
// identity-from-index shape, repurposed from libp2p peer identities to
// dotted-quad endpoint addresses.
type ipAllocator struct {
	mgmtSubnet string
	mgmtNext   int
	mgmtByName map[string]string

	linkNext int
}

func newIPAllocator() *ipAllocator {
	return &ipAllocator{
		mgmtSubnet: "10.200.0.0/24",
		mgmtNext:   2,
		mgmtByName: make(map[string]string),
	}
}

// mgmtIP assigns (or returns the already-assigned) management address for
// a peer name.
func (a *ipAllocator) mgmtIP(name string) string {
	if ip, ok := a.mgmtByName[name]; ok {
		return ip
	}
	ip := fmt.Sprintf("10.200.0.%d", a.mgmtNext)
	a.mgmtByName[name] = ip
	a.mgmtNext++
	return ip
}

// linkSubnet allocates the next per-link /24, assigning .2 to the source
// interface and .3 to the target interface, naming interfaces "p2p<i>" on
// both ends.
func (a *ipAllocator) linkSubnet(source, target string) (srcIface, srcIP, dstIface, dstIP string, err error) {
	if a.linkNext > 253 {
		return "", "", "", "", fmt.Errorf("fabric: exhausted per-link /24 allocation space")
	}
	octet := a.linkNext
	a.linkNext++

	iface := fmt.Sprintf("p2p%d", octet)
	return iface, fmt.Sprintf("10.201.%d.2", octet), iface, fmt.Sprintf("10.201.%d.3", octet), nil
}
