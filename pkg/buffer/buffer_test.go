package buffer

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/screenkit/screenkit/pkg/media"
)

var t0 = time.Now()

func frame(seq uint64) media.Frame {
	return media.Frame{Seq: seq, CapturedAt: t0.Add(time.Duration(seq) * time.Millisecond)}
}

func drain(b *Buffer) (seqs []uint64) {
	for {
		f, ok := b.TryPop()
		if !ok {
			return
		}
		seqs = append(seqs, f.Seq)
	}
}

func equal(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFifo(t *testing.T) {
	b := New(Options{Capacity: 4})
	for i := uint64(1); i <= 3; i++ {
		if !b.Push(frame(i)) {
			t.Fatalf("push %v rejected", i)
		}
	}
	if got := drain(b); !equal(got, []uint64{1, 2, 3}) {
		t.Errorf("wrong order %v", got)
	}
}

func TestOverflow(t *testing.T) {
	tests := []struct {
		policy Policy
		want   []uint64
		ok     bool
	}{
		{policy: DropNewest, want: []uint64{1, 3}, ok: true},
		{policy: DropOldest, want: []uint64{2, 3}, ok: true},
		{policy: Block, want: []uint64{1, 2}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			b := New(Options{Capacity: 2, Policy: tt.policy, Wait: 5 * time.Millisecond})
			b.Push(frame(1))
			b.Push(frame(2))
			if ok := b.Push(frame(3)); ok != tt.ok {
				t.Errorf("push of the overflowing frame = %v, want %v", ok, tt.ok)
			}
			st := b.Stats()
			if st.Dropped != 1 {
				t.Errorf("dropped = %v, want 1", st.Dropped)
			}
			if got := drain(b); !equal(got, tt.want) {
				t.Errorf("buffer holds %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockWaitsForConsumer(t *testing.T) {
	b := New(Options{Capacity: 1, Policy: Block, Wait: time.Second})
	b.Push(frame(1))

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Pop()
	}()

	if !b.Push(frame(2)) {
		t.Fatal("push should succeed once the consumer makes room")
	}
	if st := b.Stats(); st.Dropped != 0 {
		t.Errorf("dropped = %v, want 0", st.Dropped)
	}
}

func TestCloseDrains(t *testing.T) {
	b := New(Options{Capacity: 3})
	b.Push(frame(1))
	b.Push(frame(2))
	b.Close()

	if b.Push(frame(3)) {
		t.Error("push after close should be rejected")
	}
	if st := b.Stats(); st.Dropped != 0 {
		t.Errorf("rejected push after close counted as drop")
	}
	for _, want := range []uint64{1, 2} {
		f, ok := b.Pop()
		if !ok || f.Seq != want {
			t.Fatalf("pop = %v %v, want %v", f.Seq, ok, want)
		}
	}
	if _, ok := b.Pop(); ok {
		t.Error("pop on a closed empty buffer should return false")
	}
}

func TestPopUnblocksOnClose(t *testing.T) {
	b := New(Options{Capacity: 1})
	done := make(chan bool)
	go func() {
		_, ok := b.Pop()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	b.Close()
	select {
	case ok := <-done:
		if ok {
			t.Error("expected no frame")
		}
	case <-time.After(time.Second):
		t.Fatal("pop hasn't returned after close")
	}
}

func TestConcurrentOrder(t *testing.T) {
	for _, policy := range []Policy{DropNewest, DropOldest, Block} {
		t.Run(policy.String(), func(t *testing.T) {
			b := New(Options{Capacity: 8, Policy: policy, Wait: time.Millisecond})
			producers, perProducer := 4, 500

			var wg sync.WaitGroup
			wg.Add(producers)
			for p := 0; p < producers; p++ {
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						b.Push(media.Frame{Seq: uint64(p*perProducer + i + 1), CapturedAt: time.Now()})
					}
				}(p)
			}

			seen := make(map[uint64]bool)
			var last time.Time
			var popped uint64
			consumed := make(chan struct{})
			go func() {
				defer close(consumed)
				for {
					f, ok := b.Pop()
					if !ok {
						return
					}
					if f.CapturedAt.Before(last) {
						t.Errorf("frame %v goes back in time", f.Seq)
					}
					if seen[f.Seq] {
						t.Errorf("frame %v is duplicated", f.Seq)
					}
					seen[f.Seq] = true
					last = f.CapturedAt
					popped++
				}
			}()

			wg.Wait()
			b.Close()
			<-consumed

			st := b.Stats()
			total := uint64(producers * perProducer)
			if policy == Block {
				// rejected frames never enter the queue
				if st.Pushed != popped || st.Pushed+st.Dropped != total {
					t.Errorf("pushed %v, dropped %v, popped %v of %v", st.Pushed, st.Dropped, popped, total)
				}
				return
			}
			// evicted frames were accepted first
			if st.Pushed != total || st.Pushed-st.Dropped != popped {
				t.Errorf("pushed %v, dropped %v, popped %v of %v", st.Pushed, st.Dropped, popped, total)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{DropNewest, DropOldest, Block} {
		got, err := ParsePolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePolicy(%v) = %v, %v", p, got, err)
		}
	}
	if _, err := ParsePolicy("random"); err == nil {
		t.Error("expected an error")
	}
}

func BenchmarkPushPop(b *testing.B) {
	buf := New(Options{Capacity: DefaultCapacity})
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	go func() {
		for {
			if _, ok := buf.Pop(); !ok {
				return
			}
		}
	}()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Push(media.Frame{Image: img, Seq: uint64(i), CapturedAt: time.Now()})
	}
	buf.Close()
}
