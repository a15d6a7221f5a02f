package models

// FlattenTree walks nodes depth-first and returns every folder, each parent
// before its children and siblings in input order. ParentFolderID is taken
// from the enclosing node; top-level nodes get a zero parent.
func FlattenTree(nodes []FolderNode) []Folder {
	out := make([]Folder, 0, CountNodes(nodes))
	var walk func(nodes []FolderNode, parent *FolderNode)
	walk = func(nodes []FolderNode, parent *FolderNode) {
		for i := range nodes {
			n := &nodes[i]
			f := Folder{
				ID:        n.ID,
				Name:      n.Name,
				FullPath:  n.Path,
				CreatedAt: n.CreatedAt,
			}
			if parent != nil {
				f.ParentFolderID = parent.ID
				f.ParentFolderName = parent.Name
			}
			f.SubFolderCount = len(n.Children)
			out = append(out, f)
			walk(n.Children, n)
		}
	}
	walk(nodes, nil)
	return out
}

// CountNodes returns the number of nodes in the forest.
func CountNodes(nodes []FolderNode) int {
	n := len(nodes)
	for _, c := range nodes {
		n += CountNodes(c.Children)
	}
	return n
}

// FindNode returns the node with the given id, or nil.
func FindNode(nodes []FolderNode, id ID) *FolderNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
		if found := FindNode(nodes[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}
