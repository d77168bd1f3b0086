package service

import (
	"context"
	"errors"
	"testing"
)

type svc struct {
	name  string
	log   *[]string
	fails bool
}

func (s *svc) Run() { *s.log = append(*s.log, "run "+s.name) }
func (s *svc) Shutdown(context.Context) error {
	*s.log = append(*s.log, "stop "+s.name)
	if s.fails {
		return errors.New("boom")
	}
	return nil
}
func (s *svc) String() string { return s.name }

func TestGroup(t *testing.T) {
	var log []string
	g := Group{}
	g.Add(&svc{name: "a", log: &log}, "not runnable", &svc{name: "b", log: &log, fails: true})
	g.Start()
	err := g.Shutdown(context.Background())
	if err == nil {
		t.Error("expected an error")
	}
	want := []string{"run a", "run b", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("calls = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("calls = %v, want %v", log, want)
			break
		}
	}
}
