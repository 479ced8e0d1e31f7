package mir

// SimplifyCFG tidies a body after rewriting:
//  1. trivial goto blocks (no statements) are forwarded through,
//  2. goto chains collapse to their final target,
//  3. unreachable blocks are removed,
//  4. surviving blocks are renumbered densely, entry stays bb0.
func SimplifyCFG(f *Body) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}

	redirects := buildRedirectMap(f)
	applyRedirects(f, redirects)
	reachable := computeReachability(f)
	compactBlocks(f, reachable)
}

// buildRedirectMap finds trivial goto blocks and maps their ids to final
// targets, following chains. Forwarding never crosses the cleanup
// boundary, unwind edges must keep landing in cleanup blocks.
func buildRedirectMap(f *Body) map[BlockID]BlockID {
	redirects := make(map[BlockID]BlockID)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if len(bb.Stmts) != 0 || bb.Term.Kind != TermGoto {
			continue
		}
		target := bb.Term.Goto.Target
		visited := make(map[BlockID]bool)
		for !visited[target] {
			visited[target] = true

			if next, ok := redirects[target]; ok {
				target = next
				continue
			}
			if isTrivialGoto(f, target) {
				target = f.Blocks[target].Term.Goto.Target
				continue
			}
			break
		}
		if int(target) < len(f.Blocks) && f.Blocks[target].IsCleanup == bb.IsCleanup {
			redirects[bb.ID] = target
		}
	}
	return redirects
}

func isTrivialGoto(f *Body, id BlockID) bool {
	if id < 0 || int(id) >= len(f.Blocks) {
		return false
	}
	bb := &f.Blocks[id]
	return len(bb.Stmts) == 0 && bb.Term.Kind == TermGoto
}

func applyRedirects(f *Body, redirects map[BlockID]BlockID) {
	if len(redirects) == 0 {
		return
	}
	for i := range f.Blocks {
		VisitSuccessors(&f.Blocks[i].Term, func(id *BlockID) {
			if newID, ok := redirects[*id]; ok {
				*id = newID
			}
		})
	}
}

// computeReachability performs a DFS from the entry block.
func computeReachability(f *Body) []bool {
	reachable := make([]bool, len(f.Blocks))

	var visit func(id BlockID)
	visit = func(id BlockID) {
		if id < 0 || int(id) >= len(f.Blocks) || reachable[id] {
			return
		}
		reachable[id] = true
		VisitSuccessors(&f.Blocks[id].Term, func(s *BlockID) {
			visit(*s)
		})
	}

	visit(EntryBlock)
	return reachable
}

// compactBlocks removes unreachable blocks and renumbers the rest in
// order. Entry is always reachable, so it keeps id 0.
func compactBlocks(f *Body, reachable []bool) {
	count := 0
	for _, r := range reachable {
		if r {
			count++
		}
	}

	if count == len(f.Blocks) {
		for i := range f.Blocks {
			f.Blocks[i].ID = BlockID(int32(i))
		}
		return
	}

	oldToNew := make(map[BlockID]BlockID, count)
	newBlocks := make([]Block, 0, count)
	for i, keep := range reachable {
		if keep {
			oldToNew[BlockID(int32(i))] = BlockID(int32(len(newBlocks)))
			newBlocks = append(newBlocks, f.Blocks[i])
		}
	}

	for i := range newBlocks {
		newBlocks[i].ID = BlockID(int32(i))
		VisitSuccessors(&newBlocks[i].Term, func(id *BlockID) {
			if newID, ok := oldToNew[*id]; ok {
				*id = newID
			}
		})
	}

	f.Blocks = newBlocks
}
