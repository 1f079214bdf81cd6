package datastore

// ApplyOverlay applies a patch node over a base node and returns the merged
// result as a new tree. Tables merge recursively: a patch value of
// KindSpecialErase deletes the base key, any other value replaces or adds
// it. Non-table patches replace the base wholesale. An erase marker at the
// root yields a null node.
func ApplyOverlay(base, patch *Node) *Node {
	if patch.IsErase() {
		return Null()
	}
	if !base.IsTable() || !patch.IsTable() {
		return patch.Copy()
	}
	out := base.Copy()
	patch.TableRange(func(key string, v *Node) bool {
		if v.IsErase() {
			out.TableDelete(key)
			return true
		}
		if existing, ok := out.TableGet(key); ok && existing.IsTable() && v.IsTable() {
			out.TableSet(key, ApplyOverlay(existing, v))
			return true
		}
		out.TableSet(key, v.Copy())
		return true
	})
	return out
}
