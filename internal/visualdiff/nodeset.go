package visualdiff

import "github.com/codalotl/visualdiff/internal/dom"

// nodeSet is a set of nodes that remembers insertion order.
type nodeSet struct {
	order   []*dom.Node
	members map[*dom.Node]bool
}

func newNodeSet() *nodeSet {
	return &nodeSet{members: map[*dom.Node]bool{}}
}

func (s *nodeSet) add(n *dom.Node) {
	if s.members[n] {
		return
	}
	s.members[n] = true
	s.order = append(s.order, n)
}

func (s *nodeSet) has(n *dom.Node) bool {
	return s.members[n]
}

func (s *nodeSet) remove(n *dom.Node) {
	delete(s.members, n)
}

// list returns the members in insertion order.
func (s *nodeSet) list() []*dom.Node {
	out := make([]*dom.Node, 0, len(s.members))
	seen := make(map[*dom.Node]bool, len(s.members))
	for _, n := range s.order {
		if s.members[n] && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (s *nodeSet) len() int {
	return len(s.members)
}
