package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		title, desc string
		want        Category
	}{
		{"How to Budget Your Money", "Saving tips for a better retirement", Finance},
		{"Getting Started with React Hooks", "A frontend developer guide to modern javascript", Tech},
		{"Acing Your Next Job Interview", "Resume and salary negotiation advice", Career},
		{"Best Online Courses for Students", "Learn new subjects at university level", Education},
		{"New GDPR Compliance Rules", "What the privacy regulation means for your business", Regulations},
		{"Building Healthy Habits", "Sleep better and improve your fitness", Lifestyle},
		{"Improve Your Public Speaking", "Communication and writing practice for everyone", Skills},
	}
	for _, tt := range tests {
		if got := Classify(tt.title, tt.desc); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	cat := Classify("", "")
	if cat != General {
		t.Errorf("expected GENERAL for empty input, got %s", cat)
	}
}

func TestClassifyDefaultsToGeneral(t *testing.T) {
	cat := Classify("Our Year in Review", "A look back at what we accomplished")
	if cat != General {
		t.Errorf("expected GENERAL for generic content, got %s", cat)
	}
}

func TestClassifyTitleWeightedHigher(t *testing.T) {
	// "tax" in the title outweighs a description-only education keyword
	cat := Classify("Tax Season Checklist", "learn")
	if cat != Finance {
		t.Errorf("expected FINANCE from title keyword, got %s", cat)
	}
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		alias    string
		expected Category
		wantErr  bool
	}{
		{"fin", Finance, false},
		{"tech", Tech, false},
		{"edu", Education, false},
		{"regs", Regulations, false},
		{"life", Lifestyle, false},
		{"general", General, false},
		{"SKILLS", Skills, false}, // full label
		{"Career", Career, false}, // any case
		{"bogus", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveAlias(tt.alias)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveAlias(%q): expected error", tt.alias)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveAlias(%q): unexpected error: %v", tt.alias, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ResolveAlias(%q) = %q, want %q", tt.alias, got, tt.expected)
		}
	}
}

func TestAllCategories(t *testing.T) {
	cats := AllCategories()
	if len(cats) != 7 {
		t.Errorf("expected 7 categories, got %d", len(cats))
	}
}
