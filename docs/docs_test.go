package docs

import (
	"bufio"
	"errors"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in the index can be loaded, and every topic is listed
	// in the index.
	index, err := Topic(Index)
	if err != nil {
		t.Fatalf("Topic(%q) error = %v", Index, err)
	}

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(strings.NewReader(index))
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}

	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("Topic(%q) error = %v", topic, err)
		}
	}

	all, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	slices.Sort(listed)
	if !slices.Equal(all, listed) {
		t.Errorf("All() = %q, want the topics of the index %q", all, listed)
	}
}

func TestTopic_NotFound(t *testing.T) {
	for _, name := range []string{"nope", "../docs", "readme.md", ""} {
		if _, err := Topic(name); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Topic(%q) error = %v, want %v", name, err, fs.ErrNotExist)
		}
	}
}

func TestTopics_Star(t *testing.T) {
	got, err := Topics("*")
	if err != nil {
		t.Fatalf("Topics(*) error = %v", err)
	}
	all, _ := All()
	for _, name := range all {
		content, _ := Topic(name)
		if !strings.Contains(got, content) {
			t.Errorf("Topics(*) does not contain topic %q", name)
		}
	}
	if strings.Contains(got, "ldg topic <topic>") {
		t.Errorf("Topics(*) contains the index")
	}
}

// TestTopics_Heading checks that each topic starts with a level 1 heading.
func TestTopics_Heading(t *testing.T) {
	all, _ := All()
	for _, name := range append(all, Index) {
		t.Run(name, func(t *testing.T) {
			content, err := Topic(name)
			if err != nil {
				t.Fatalf("Topic() error = %v", err)
			}
			root := goldmark.DefaultParser().Parse(text.NewReader([]byte(content)))
			h, ok := root.FirstChild().(*ast.Heading)
			if !ok || h.Level != 1 {
				t.Errorf("topic %q does not start with a level 1 heading", name)
			}
		})
	}
}
