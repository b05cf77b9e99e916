package orp

import (
	"math/bits"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/bitutil"
	"github.com/wCloudRain/orp/record"
)

// persist and swap are the two settings of a 2x2 switch (spec.md §4.7):
// persist passes its two inputs straight through, swap crosses them.
const (
	persist = true
	swap    = false
)

// Waksman realizes π with a recursively configured Waksman network plus a
// low-client-memory "skip array" optimization (spec.md §4.7), ported from
// Holland, Ohrimenko & Wirth's waksman.cpp/waksman.h (original_source/alg,
// original_source/headers): a permutation tree of switches, each node
// covering a contiguous range of the array and recursively decomposing into
// an entry switch layer, two child subnetworks, and an exit switch layer.
//
// The reference's tree nodes carry parent pointers and own their switch
// bitvectors for exactly the lifetime spec.md's design notes describe:
// configuration phase builds them top-down, the empty road phase reads them
// bottom-up in a second, independent tree walk that never touches entry/exit
// (it recovers switch settings from the bit stack each element carries in
// Aux instead) — so wakNode is reused for both walks, but only populated
// with entry/exit during the first.
type Waksman struct {
	svc    arraystore.Service
	oracle *PermutationOracle
	alloc  *arraystore.Allocator
	n      uint32

	leafSize uint32

	temp1, temp2, temp3, skipArray Name
	skipIndices                   []uint32
}

// wakNode is one node of the permutation tree: a contiguous sub-range
// [offset, offset+size) of the array, owned by its parent. entry and exit
// hold this node's exterior switch settings once set_exterior has run;
// nodes built for the empty road phase's traversal never populate them,
// since that phase recovers settings from each element's Aux bit stack.
type wakNode struct {
	parent      *wakNode
	depth       uint32
	isLeftChild bool
	offset      uint32
	size        uint32
	entry, exit []bool
}

// NewWaksman constructs a Waksman ORP over n elements. n must be at least 2;
// a single element has no permutation to realize.
func NewWaksman(svc arraystore.Service, n uint32, seed int64) (*Waksman, error) {
	if n < 2 {
		return nil, ErrInvalidLength
	}
	return &Waksman{
		svc:      svc,
		oracle:   NewPermutationOracle(n, seed),
		alloc:    arraystore.NewAllocator(),
		n:        n,
		leafSize: leafSizeFor(n),
	}, nil
}

func (w *Waksman) GetPi(key uint32) uint32     { return w.oracle.Pi(key) }
func (w *Waksman) GetInvPi(index uint32) uint32 { return w.oracle.InvPi(index) }

// leafSizeFor picks 3 or 4 so every leaf of the permutation tree ends up at
// the same depth (spec.md §4.7): 3 when n sits in the lower half of its
// power-of-two range, 4 when it sits in the upper half. msb is the 1-based
// position of n's highest set bit; mask is the midpoint of [2^(msb-1),2^msb).
func leafSizeFor(n uint32) uint32 {
	msb := uint32(bits.Len32(n | 1))
	mask := (uint32(1) << (msb - 1)) | (uint32(1) << (msb - 2))
	if n > mask {
		return 4
	}
	return 3
}

// treeHeight is the number of internal levels above the leaf layer: the
// number of times n must be halved before reaching leafSize or below.
func (w *Waksman) treeHeight() uint32 {
	h := uint32(0)
	size := w.n
	for size > w.leafSize {
		h++
		size /= 2
	}
	return h
}

// Permute runs the configuration phase (which both configures the network
// and routes every element into it, spec.md §4.7.1) followed by the empty
// road phase (§4.7.6), and returns the name of the resulting π-ordered
// array. Four reserved arrays back the call: temp1 (aliasing inputName),
// temp2, temp3, and skip_array, per spec.md §6. Every one of temp2, temp3
// and skip_array is deleted on any error exit, per spec.md §5.
func (w *Waksman) Permute(inputName Name) (out Name, err error) {
	w.temp1 = inputName
	names := w.alloc.Reserve(3)
	w.temp2, w.temp3, w.skipArray = names[0], names[1], names[2]
	temps := newTempArrays(w.svc)
	defer func() {
		if err != nil {
			temps.abort()
		}
	}()

	if err = temps.create(w.temp2, w.n); err != nil {
		return Name(0), err
	}
	if err = temps.create(w.temp3, w.n); err != nil {
		return Name(0), err
	}
	if err = temps.create(w.skipArray, w.n); err != nil {
		return Name(0), err
	}

	// +2 gives headroom past the exact tree height; skip_fn's recursion
	// never runs deeper than treeHeight levels above a leaf.
	w.skipIndices = make([]uint32, w.treeHeight()+2)

	root := &wakNode{depth: 1, isLeftChild: true, offset: 0, size: w.n}
	if err = w.configurationPhase(root, w.temp1); err != nil {
		return Name(0), err
	}

	var output Name
	output, err = w.emptyRoadPhase()
	if err != nil {
		return Name(0), err
	}

	if err = temps.delete(w.skipArray); err != nil {
		return Name(0), err
	}
	if err = temps.delete(w.temp2); err != nil {
		return Name(0), err
	}
	if output == w.temp1 {
		if err = temps.delete(w.temp3); err != nil {
			return Name(0), err
		}
	} else {
		if err = temps.delete(w.temp1); err != nil {
			return Name(0), err
		}
	}

	if err = w.clearAux(output); err != nil {
		return Name(0), err
	}
	temps.release(output)
	return output, nil
}

// clearAux zeroes Aux on every output element. The empty road phase's
// apply_switch pops one Aux bit per level on the way out, so a correctly
// routed element should already reach the output with Aux==0; this pass is
// the same defensive final sweep Bitonic runs, guaranteeing spec.md §3's
// "aux = 0 on all output elements" invariant regardless.
func (w *Waksman) clearAux(name Name) error {
	for i := uint32(0); i < w.n; i++ {
		e, err := w.svc.Get(name, i)
		if err != nil {
			return err
		}
		e.ClearAux()
		if err := w.svc.Put(name, i, e); err != nil {
			return err
		}
	}
	return nil
}

// configurationPhase is the depth-first preorder traversal of spec.md
// §4.7.1: at a leaf, route every element directly; at an internal node, set
// its exterior switches, route its elements one level down, then recurse
// into both children over the array the routing just wrote into.
func (w *Waksman) configurationPhase(node *wakNode, source Name) error {
	size := node.size
	target := w.temp2
	if source != w.temp1 {
		target = w.temp1
	}

	if size <= w.leafSize {
		return w.routeLeaf(node, source)
	}

	if err := w.setExterior(node); err != nil {
		return err
	}
	if err := w.routeInternalNodeCP(node, source, target); err != nil {
		return err
	}

	left := &wakNode{parent: node, depth: node.depth + 1, isLeftChild: true, offset: node.offset, size: size / 2}
	if err := w.configurationPhase(left, target); err != nil {
		return err
	}
	right := &wakNode{parent: node, depth: node.depth + 1, isLeftChild: false, offset: node.offset + size/2, size: size/2 + (size & 1)}
	return w.configurationPhase(right, target)
}

// routeLeaf retrieves every element of a leaf node from source and routes
// it according to its local subpermutation value (spec.md §4.7.4).
func (w *Waksman) routeLeaf(node *wakNode, source Name) error {
	offset := uint32(0)
	if node.parent != nil {
		offset = node.parent.offset
		if !node.isLeftChild {
			offset++
		}
	}
	for i := uint32(0); i < node.size; i++ {
		e, err := w.svc.Get(source, node.offset+i)
		if err != nil {
			return err
		}
		if err := w.routeElement(node, e, offset, w.evalPi(node, i)); err != nil {
			return err
		}
	}
	return nil
}

// routeElement places a leaf's element in temp3 at the wire position its
// local subpermutation value dictates, unless that wire skips a level (the
// bottom wire of an odd subnetwork whose parent parity says so), in which
// case it is diverted to the skip array instead. A leaf that is itself the
// whole network (n at most leaf_size) has no parent and no level to skip into;
// value is then the global destination index directly.
func (w *Waksman) routeElement(node *wakNode, elem record.Element, offset, value uint32) error {
	if node.parent == nil {
		return w.svc.Put(w.temp3, value, elem)
	}
	skipWire := false
	evenParent := node.parent.size&1 == 0
	if value == node.size-1 && (evenParent || !node.isLeftChild) {
		skipWire = true
	}
	if skipWire {
		return w.skipFn(node, elem, w.n/2, 0)
	}
	return w.svc.Put(w.temp3, offset+value*2, elem)
}

// skipFn walks up the tree from node to find the level an element must skip
// to (spec.md §4.7.3), discarding the Aux bits of the levels it bypasses,
// then appends it to the skip array in a segment reserved for that level.
func (w *Waksman) skipFn(node *wakNode, elem record.Element, offset, index uint32) error {
	parent := node.parent
	if parent.parent == nil {
		return w.depositSkip(elem, offset, index)
	}
	grandparent := parent.parent
	if grandparent.size&1 == 0 {
		if parent.size&1 == 1 {
			// Both parent and its sibling are odd (the OO case): one more
			// level must be skipped.
			return w.skipFn(parent, elem, offset/2, index+1)
		}
		if node.isLeftChild {
			return w.depositSkip(elem, offset, index)
		}
		return w.skipFn(parent, elem, offset/2, index+1)
	}
	if parent.isLeftChild || node.isLeftChild {
		return w.depositSkip(elem, offset, index)
	}
	return w.skipFn(parent, elem, offset/2, index+1)
}

func (w *Waksman) depositSkip(elem record.Element, offset, index uint32) error {
	elem.Aux >>= index + 1
	if err := w.svc.Put(w.skipArray, offset+w.skipIndices[index], elem); err != nil {
		return err
	}
	w.skipIndices[index]++
	return nil
}

// routeInternalNodeCP routes an internal node's ceil(size/2) switches from
// source to dest. The first num_switches-2 follow the uniform switch
// routine; the last one or two branch on the parity of the node and its
// children (spec.md §4.7.1).
func (w *Waksman) routeInternalNodeCP(node *wakNode, source, dest Name) error {
	numSwitches := ceilDiv2(node.size)
	size := node.size

	for i := uint32(0); i+2 < numSwitches; i++ {
		if err := w.routeSwitchCP(node, source, dest, i); err != nil {
			return err
		}
	}

	if size&1 == 0 {
		if err := w.routeSwitchCP(node, source, dest, numSwitches-2); err != nil {
			return err
		}
		if (size/2)&1 == 1 {
			e1, err := w.getUpdateElem(node, source, node.size-2)
			if err != nil {
				return err
			}
			e2, err := w.getUpdateElem(node, source, node.size-1)
			if err != nil {
				return err
			}
			if node.entry[numSwitches-1] == persist {
				if err := w.routeWire(e1, size/2, w.evalPi(node, size-2)/2, node.offset+numSwitches-1, dest); err != nil {
					return err
				}
				return w.routeWire(e2, size/2, w.evalPi(node, size-1)/2, node.offset+size-1, dest)
			}
			if err := w.routeWire(e2, size/2, w.evalPi(node, size-1)/2, node.offset+numSwitches-1, dest); err != nil {
				return err
			}
			return w.routeWire(e1, size/2, w.evalPi(node, size-2)/2, node.offset+node.size-1, dest)
		}
		return w.routeSwitchCP(node, source, dest, numSwitches-1)
	}

	if (node.size/2)&1 == 1 {
		e1, err := w.getUpdateElem(node, source, node.size-3)
		if err != nil {
			return err
		}
		e2, err := w.getUpdateElem(node, source, node.size-2)
		if err != nil {
			return err
		}
		if node.entry[numSwitches-2] == persist {
			if err := w.routeWire(e1, size/2, w.evalPi(node, size-3)/2, node.offset+numSwitches-2, dest); err != nil {
				return err
			}
			if err := w.svc.Put(dest, node.offset+size-2, e2); err != nil {
				return err
			}
		} else {
			if err := w.svc.Put(dest, node.offset+size-2, e1); err != nil {
				return err
			}
			if err := w.routeWire(e2, size/2, w.evalPi(node, size-2)/2, node.offset+numSwitches-2, dest); err != nil {
				return err
			}
		}
	} else {
		if err := w.routeSwitchCP(node, source, dest, numSwitches-2); err != nil {
			return err
		}
	}

	if node.parent == nil {
		e1, err := w.getUpdateElem(node, source, node.size-1)
		if err != nil {
			return err
		}
		return w.routeWire(e1, ceilDiv2(node.size), w.evalPi(node, size-1)/2, node.offset+node.size-1, dest)
	}
	return nil
}

// routeSwitchCP retrieves the two elements feeding entry switch index and
// writes them to dest, crossed or not per node.entry[index].
func (w *Waksman) routeSwitchCP(node *wakNode, source, dest Name, index uint32) error {
	uEven, err := w.getUpdateElem(node, source, 2*index)
	if err != nil {
		return err
	}
	uOdd, err := w.getUpdateElem(node, source, 2*index+1)
	if err != nil {
		return err
	}
	if node.entry[index] == persist {
		if err := w.svc.Put(dest, node.offset+index, uEven); err != nil {
			return err
		}
		return w.svc.Put(dest, node.offset+node.size/2+index, uOdd)
	}
	if err := w.svc.Put(dest, node.offset+index, uOdd); err != nil {
		return err
	}
	return w.svc.Put(dest, node.offset+node.size/2+index, uEven)
}

// routeWire carries an element along a wire that skips this level (spec.md
// §4.7.5): if the current subnetwork is even-sized or a leaf, the wire
// terminates here; otherwise its upcoming exit-switch bit is pushed onto
// Aux and the wire continues one level down, alternating between temp1 and
// temp2.
func (w *Waksman) routeWire(elem record.Element, size, permValue, index uint32, dest Name) error {
	if size&1 == 0 || size == 3 {
		return w.svc.Put(dest, index, elem)
	}
	exitSwitch := swap
	if permValue&1 == 1 {
		exitSwitch = persist
	}
	next := w.temp2
	if dest != w.temp1 {
		next = w.temp1
	}
	elem.Aux <<= 1
	if exitSwitch {
		elem.Aux |= 1
	}
	return w.routeWire(elem, ceilDiv2(size), permValue/2, index, next)
}

// getUpdateElem retrieves the element at source[node.offset+index], pushes
// the exit-switch bit governing its eventual empty-road routing onto Aux,
// and returns it.
func (w *Waksman) getUpdateElem(node *wakNode, source Name, index uint32) (record.Element, error) {
	e, err := w.svc.Get(source, node.offset+index)
	if err != nil {
		return record.Element{}, err
	}
	setting := node.exit[w.evalPi(node, index)/2]
	e.Aux <<= 1
	if setting {
		e.Aux |= 1
	}
	return e, nil
}

// evalPi is π_node(key): spec.md §4.7.4. At the root it is the global π;
// otherwise it defers to the parent's entry switch at key and recurses.
func (w *Waksman) evalPi(node *wakNode, key uint32) uint32 {
	parent := node.parent
	if parent == nil {
		return w.oracle.Pi(key)
	}
	term := parent.entry[key]
	if node.isLeftChild {
		if term == persist {
			return w.evalPi(parent, 2*key) / 2
		}
		return w.evalPi(parent, 2*key+1) / 2
	}
	if term == swap {
		return w.evalPi(parent, 2*key) / 2
	}
	return w.evalPi(parent, 2*key+1) / 2
}

// evalInvPi is π⁻¹_node(key), symmetric with evalPi using exit switches.
func (w *Waksman) evalInvPi(node *wakNode, key uint32) uint32 {
	parent := node.parent
	if parent == nil {
		return w.oracle.InvPi(key)
	}
	setting := parent.exit[key]
	if node.isLeftChild {
		if setting == persist {
			return w.evalInvPi(parent, 2*key) / 2
		}
		return w.evalInvPi(parent, 2*key+1) / 2
	}
	if setting == swap {
		return w.evalInvPi(parent, 2*key) / 2
	}
	return w.evalInvPi(parent, 2*key+1) / 2
}

// setExterior finds a valid 2-coloring of node's entry/exit switches
// (spec.md §4.7.2) by alternating between exit->entry (via π⁻¹_node) and
// entry->exit (via π_node) edges of the bipartite constraint graph,
// starting a fresh cycle at the next unset switch whenever one closes.
func (w *Waksman) setExterior(node *wakNode) error {
	numSwitch := ceilDiv2(node.size)
	entrySet := make([]bool, numSwitch)
	exitSet := make([]bool, numSwitch)
	entry := make([]bool, numSwitch)
	exit := make([]bool, numSwitch)

	var cur uint32
	var curSetting bool
	if node.size&1 == 1 {
		cur = node.size - 1
		curSetting = swap
		exit[numSwitch-1] = swap
		entry[numSwitch-1] = swap
		entrySet[numSwitch-1] = true
	} else {
		cur = node.size - 1
		curSetting = persist
		exit[numSwitch-1] = persist
	}
	exitSet[numSwitch-1] = true

	count := uint32(1)
	if node.size&1 == 1 {
		count = 2
	}

	resEntry, resExit := uint32(0), uint32(0)
	inv := true
	for count < 2*numSwitch {
		var tar uint32
		if inv {
			tar = w.evalInvPi(node, cur)
			cur, curSetting = w.setSwitch(cur, tar, curSetting, &resEntry, entry, entrySet)
		} else {
			tar = w.evalPi(node, cur)
			cur, curSetting = w.setSwitch(cur, tar, curSetting, &resExit, exit, exitSet)
		}
		inv = !inv
		count++
	}

	node.entry = entry
	node.exit = exit
	return nil
}

// setSwitch advances one step of set_exterior's bipartite-graph traversal:
// if the switch at tar/2 is unset, it is configured from cur's setting and
// the parity of cur versus tar, then the walk moves to tar's sibling wire.
// If it is already set, the cycle has closed and the walk jumps to the
// reserve switch, set arbitrarily to persist.
func (w *Waksman) setSwitch(cur, tar uint32, curSetting bool, reserve *uint32, settings, isSet []bool) (uint32, bool) {
	if !isSet[tar/2] {
		sameParity := (cur & 1) == (tar & 1)
		newSetting := sameParity == curSetting
		settings[tar/2] = newSetting
		isSet[tar/2] = true

		newCur := tar + 1
		if tar&1 == 1 {
			newCur = tar - 1
		}
		if *reserve == tar/2 {
			*reserve = nextNull(isSet, *reserve)
		}
		return newCur, newSetting
	}

	newCur := 2 * (*reserve)
	settings[newCur/2] = persist
	isSet[newCur/2] = true
	*reserve = nextNull(isSet, *reserve)
	return newCur, persist
}

// nextNull returns the lowest index in bitvec strictly greater than index
// that is still false, or len(bitvec) if none remains.
func nextNull(bitvec []bool, index uint32) uint32 {
	length := uint32(len(bitvec))
	if index == length {
		return length
	}
	index++
	for index < length && bitvec[index] {
		index++
	}
	return index
}

// emptyRoadPhase runs the second Waksman pass (spec.md §4.7.6): a reverse
// level-order traversal, realized as a sequence of preorder traversals each
// stopping at one depth, routing elements through the exit-switch half of
// the network using the settings each element's Aux bit stack carries.
func (w *Waksman) emptyRoadPhase() (Name, error) {
	root := &wakNode{depth: 1, isLeftChild: true, offset: 0, size: w.n}
	source, dest := w.temp3, w.temp1
	skipIndex := w.n

	for h := w.treeHeight(); h > 0; h-- {
		var err error
		skipIndex, err = w.preorderTrav(root, h, source, dest, skipIndex)
		if err != nil {
			return Name(0), err
		}
		source, dest = dest, source
		skipIndex /= 2
	}
	return source, nil
}

// preorderTrav visits every node at depth, in left-to-right order, routing
// it with routeInternalNodeERP.
func (w *Waksman) preorderTrav(node *wakNode, depth uint32, source, dest Name, skipIndex uint32) (uint32, error) {
	if node.depth == depth {
		return w.routeInternalNodeERP(node, source, dest, skipIndex)
	}
	size := node.size
	left := &wakNode{parent: node, depth: node.depth + 1, isLeftChild: true, offset: node.offset, size: size / 2}
	skipIndex, err := w.preorderTrav(left, depth, source, dest, skipIndex)
	if err != nil {
		return 0, err
	}
	right := &wakNode{parent: node, depth: node.depth + 1, isLeftChild: false, offset: node.offset + size/2, size: size/2 + (size & 1)}
	return w.preorderTrav(right, depth, source, dest, skipIndex)
}

// routeInternalNodeERP routes one node's exit switches during the empty
// road phase: most read both incoming elements from source, but a node
// whose children's parities left elements stranded in the skip array during
// configuration reads one or both wires from there instead (spec.md
// §4.7.6). At the root, the bottom one or two wires (which never passed
// through a switch at all) are pulled straight from the skip array.
func (w *Waksman) routeInternalNodeERP(node *wakNode, source, dest Name, skipIndex uint32) (uint32, error) {
	numSwitches := ceilDiv2(node.size)
	sizeLeft := node.size / 2

	if node.parent == nil {
		if err := w.completeBottomWires(dest, skipIndex/2); err != nil {
			return 0, err
		}
	}

	sourceIndex := node.offset
	if node.size <= w.leafSize*2 {
		for i := uint32(0); i+1 < numSwitches; i++ {
			if err := w.routeSwitchERP(source, dest, sourceIndex, node, i); err != nil {
				return 0, err
			}
			sourceIndex += 2
		}
		return skipIndex, nil
	}

	for i := uint32(0); i+3 < numSwitches; i++ {
		if err := w.routeSwitchERP(source, dest, sourceIndex, node, i); err != nil {
			return 0, err
		}
		sourceIndex += 2
	}

	if node.size&1 == 0 {
		if err := w.routeSwitchERP(source, dest, sourceIndex, node, numSwitches-3); err != nil {
			return 0, err
		}
		sourceIndex += 2
		if sizeLeft&1 == 1 {
			if err := w.routeSwitchERP(source, dest, sourceIndex, node, numSwitches-2); err != nil {
				return 0, err
			}
			return skipIndex, nil
		}
		if err := w.routeSwitchERP(w.skipArray, dest, skipIndex, node, numSwitches-2); err != nil {
			return 0, err
		}
		return skipIndex + 2, nil
	}

	if sizeLeft&1 == 1 {
		if err := w.routeSwitchERP(source, dest, sourceIndex, node, numSwitches-3); err != nil {
			return 0, err
		}
		if err := w.routeSwitchERP(w.skipArray, dest, skipIndex, node, numSwitches-2); err != nil {
			return 0, err
		}
		return skipIndex + 2, nil
	}

	if err := w.routeSwitchERPMixed(source, dest, sourceIndex+1, skipIndex, node, numSwitches-3); err != nil {
		return 0, err
	}
	if err := w.routeSwitchERPMixed(source, dest, sourceIndex+3, skipIndex+1, node, numSwitches-2); err != nil {
		return 0, err
	}
	return skipIndex + 2, nil
}

// routeSwitchERP reads both of a switch's incoming elements from source
// (which may itself be the skip array, for switches whose elements were
// entirely stranded there) and applies the switch.
func (w *Waksman) routeSwitchERP(source, dest Name, index uint32, node *wakNode, switchNum uint32) error {
	vTop, err := w.svc.Get(source, index)
	if err != nil {
		return err
	}
	vBottom, err := w.svc.Get(source, index+1)
	if err != nil {
		return err
	}
	return w.applySwitch(vTop, vBottom, dest, node, switchNum)
}

// routeSwitchERPMixed applies a switch whose top wire was stranded in the
// skip array during configuration but whose bottom wire was not.
func (w *Waksman) routeSwitchERPMixed(source, dest Name, sourceIndex, skipIdx uint32, node *wakNode, switchNum uint32) error {
	vTop, err := w.svc.Get(w.skipArray, skipIdx)
	if err != nil {
		return err
	}
	vBottom, err := w.svc.Get(source, sourceIndex)
	if err != nil {
		return err
	}
	return w.applySwitch(vTop, vBottom, dest, node, switchNum)
}

// applySwitch pops the low Aux bit of vTop to recover the switch's setting,
// shifts both elements' Aux right, and writes them crossed or not into
// dest at the parent-relative wire positions switchNum addresses.
func (w *Waksman) applySwitch(vTop, vBottom record.Element, dest Name, node *wakNode, switchNum uint32) error {
	keepOrder := vTop.Aux&1 == 1
	vTop.Aux >>= 1
	vBottom.Aux >>= 1

	var topIndex, bottomIndex uint32
	if node.parent == nil {
		topIndex = 2 * switchNum
		bottomIndex = topIndex + 1
	} else {
		topIndex = node.parent.offset + 4*switchNum
		if !node.isLeftChild {
			topIndex++
		}
		bottomIndex = topIndex + 2
	}

	if keepOrder {
		if err := w.svc.Put(dest, topIndex, vTop); err != nil {
			return err
		}
		return w.svc.Put(dest, bottomIndex, vBottom)
	}
	if err := w.svc.Put(dest, topIndex, vBottom); err != nil {
		return err
	}
	return w.svc.Put(dest, bottomIndex, vTop)
}

// completeBottomWires pulls the root's one or two final wires (which skip
// every level, since they never pass through a root-level switch) straight
// from the skip array into the output.
func (w *Waksman) completeBottomWires(dest Name, skipIndex uint32) error {
	topWire, err := w.svc.Get(w.skipArray, skipIndex)
	if err != nil {
		return err
	}
	if w.n&1 == 1 {
		return w.svc.Put(dest, w.n-1, topWire)
	}
	bottomWire, err := w.svc.Get(w.skipArray, skipIndex+1)
	if err != nil {
		return err
	}
	if err := w.svc.Put(dest, w.n-2, topWire); err != nil {
		return err
	}
	return w.svc.Put(dest, w.n-1, bottomWire)
}

func ceilDiv2(x uint32) uint32 {
	return uint32(bitutil.CeilDiv(uint64(x), 2))
}
