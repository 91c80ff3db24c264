package tree

// noChild marks the absent children of a leaf.
const noChild = -1

// Node is one entry of a tree's node arena. A node is either internal
// (Left and Right index its two children) or a leaf (Left == Right == -1).
//
// Value is the mean target of the training rows that reached the node; for
// a leaf it is the prediction.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int

	Value    float64
	Impurity float64 // sample variance of the targets at this node
	NSamples int
	Depth    int
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return n.Left == noChild
}

func newLeaf(value, impurity float64, nSamples, depth int) Node {
	return Node{
		Feature:  noChild,
		Left:     noChild,
		Right:    noChild,
		Value:    value,
		Impurity: impurity,
		NSamples: nSamples,
		Depth:    depth,
	}
}
