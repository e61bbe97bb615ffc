package deps

// Summary aggregates verdicts over a completed tree. Cycle references are
// back-edges, not packages, and are never counted.
type Summary struct {
	TotalChecked int `json:"total_checked"`
	Packaged     int `json:"packaged"`
	Missing      int `json:"missing"`
	Unknown      int `json:"unknown"`

	OptionalTotal    int `json:"optional_total"`
	OptionalPackaged int `json:"optional_packaged"`
	OptionalMissing  int `json:"optional_missing"`

	// MissingNames lists distinct missing package names in the order the
	// traversal first saw them.
	MissingNames []string `json:"missing_names,omitempty"`
}

// Summarize walks the tree and counts every expanded node once.
func Summarize(root *Node) Summary {
	var s Summary
	missing := make(map[string]struct{})

	root.Walk(func(n *Node) {
		if n.CycleRef {
			return
		}
		s.TotalChecked++
		switch n.Verdict.Status {
		case StatusPackaged:
			s.Packaged++
		case StatusMissing:
			s.Missing++
			if _, seen := missing[n.Name]; !seen {
				missing[n.Name] = struct{}{}
				s.MissingNames = append(s.MissingNames, n.Name)
			}
		default:
			s.Unknown++
		}
		if n.Optional {
			s.OptionalTotal++
			switch n.Verdict.Status {
			case StatusPackaged:
				s.OptionalPackaged++
			case StatusMissing:
				s.OptionalMissing++
			}
		}
	})
	return s
}
