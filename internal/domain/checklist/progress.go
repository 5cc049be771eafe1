package checklist

// DocumentState is the minimal view of an uploaded document the progress
// report needs
type DocumentState struct {
	Key       string
	Status    string
	FileCount int
}

// ItemProgress reports one checklist slot
type ItemProgress struct {
	Item
	Group     Group  `json:"group"`
	Uploaded  bool   `json:"uploaded"`
	Status    string `json:"status,omitempty"`
	FileCount int    `json:"file_count"`
}

// Progress summarises a claim's checklist against its uploaded documents
type Progress struct {
	Items    []ItemProgress `json:"items"`
	Missing  []string       `json:"missing"`
	Approved int            `json:"approved"`
	Total    int            `json:"total"`
	Complete bool           `json:"complete"`
}

// ComputeProgress matches documents to checklist slots. Documents whose key
// is not in the checklist are ignored.
func ComputeProgress(c Checklist, docs []DocumentState) Progress {
	byKey := make(map[string]DocumentState, len(docs))
	for _, d := range docs {
		byKey[d.Key] = d
	}

	p := Progress{Items: []ItemProgress{}, Missing: []string{}}
	groups := []struct {
		group Group
		items []Item
	}{
		{GroupInsurerForms, c.InsurerForms},
		{GroupPersonalInfo, c.PersonalInfo},
		{GroupIncidentDocuments, c.IncidentDocuments},
	}

	for _, g := range groups {
		for _, it := range g.items {
			ip := ItemProgress{Item: it, Group: g.group}
			if d, ok := byKey[it.Key]; ok && d.FileCount > 0 {
				ip.Uploaded = true
				ip.Status = d.Status
				ip.FileCount = d.FileCount
				if d.Status == "approved" {
					p.Approved++
				}
			} else if it.Required {
				p.Missing = append(p.Missing, it.Key)
			}
			p.Items = append(p.Items, ip)
		}
	}

	p.Total = len(p.Items)
	p.Complete = len(p.Missing) == 0
	return p
}
