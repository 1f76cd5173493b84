package blockingqueue

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	base "github.com/xyhelper/xyphase"
)

func TestSendReceiveFIFO(t *testing.T) {
	bq := New[int](base.FIFO)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, v := range []int{1, 2} {
		if err := bq.Send(v); err != nil {
			t.Fatalf("send %d: %v", v, err)
		}
	}
	for _, want := range []int{1, 2} {
		v, err := bq.Receive(ctx)
		if err != nil || v != want {
			t.Fatalf("receive = (%d,%v) want (%d,nil)", v, err, want)
		}
	}
}

// LIFO is the opt-in discipline: a backlog is returned newest first.
func TestSendReceiveLIFO(t *testing.T) {
	bq := New[int](base.LIFO)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := bq.SendMany(1, 2, 3)
	if err != nil || n != 3 {
		t.Fatalf("sendmany = (%d,%v) want (3,nil)", n, err)
	}
	for _, want := range []int{3, 2, 1} {
		v, err := bq.Receive(ctx)
		if err != nil || v != want {
			t.Fatalf("receive = (%d,%v) want (%d,nil)", v, err, want)
		}
	}
}

func TestReceiveBlocksAndWakes(t *testing.T) {
	bq := New[int](base.FIFO)
	got := make(chan int, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, err := bq.Receive(ctx)
		if err != nil {
			t.Errorf("receive: %v", err)
			return
		}
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	select {
	case v := <-got:
		t.Fatalf("receive returned %d before send", v)
	default:
	}
	if err := bq.Send(3); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case v := <-got:
		if v != 3 {
			t.Fatalf("receive = %d want 3", v)
		}
	case <-time.After(time.Second):
		t.Fatal("receive did not wake")
	}
}

func TestReceiveContextCancel(t *testing.T) {
	bq := New[int](base.FIFO)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := bq.Receive(ctx)
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("err = %v want deadline exceeded", err)
	}
	if !IsContextError(err) {
		t.Fatal("expected context error")
	}
}

func TestReceiveCanceledBeforeWait(t *testing.T) {
	bq := New[int](base.FIFO)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := bq.Receive(ctx); !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v want canceled", err)
	}
	// A queued value wins over a canceled context.
	_ = bq.Send(5)
	if v, err := bq.Receive(ctx); err != nil || v != 5 {
		t.Fatalf("receive = (%d,%v) want (5,nil)", v, err)
	}
}

func TestCloseWakesAndDrains(t *testing.T) {
	bq := New[string](base.FIFO)
	errc := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := bq.Receive(context.Background())
			errc <- err
		}()
	}
	time.Sleep(10 * time.Millisecond)
	bq.Close()
	for i := 0; i < 2; i++ {
		select {
		case err := <-errc:
			if !errors.Is(err, ErrClosed) {
				t.Fatalf("err = %v want ErrClosed", err)
			}
		case <-time.After(time.Second):
			t.Fatal("close did not wake receiver")
		}
	}
	if err := bq.Send("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after close = %v want ErrClosed", err)
	}
	if !bq.Closed() {
		t.Fatal("expected closed")
	}
	bq.Close() // idempotent
}

func TestCloseDeliversPending(t *testing.T) {
	bq := New[int](base.FIFO)
	_, _ = bq.SendMany(1, 2)
	bq.Close()
	ctx := context.Background()
	for _, want := range []int{1, 2} {
		if v, err := bq.Receive(ctx); err != nil || v != want {
			t.Fatalf("receive = (%d,%v) want (%d,nil)", v, err, want)
		}
	}
	if _, err := bq.Receive(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v want ErrClosed", err)
	}
}

func TestTryReceivePeekLen(t *testing.T) {
	bq := NewWithCapacity[int](base.FIFO, 4)
	if _, ok := bq.TryReceive(); ok {
		t.Fatal("expected empty")
	}
	_, _ = bq.SendMany(7, 8)
	if bq.Len() != 2 || bq.IsEmpty() {
		t.Fatalf("len = %d want 2", bq.Len())
	}
	if v, ok := bq.Peek(); !ok || v != 7 {
		t.Fatalf("peek = (%d,%v) want (7,true)", v, ok)
	}
	if v, ok := bq.TryReceive(); !ok || v != 7 {
		t.Fatalf("tryreceive = (%d,%v) want (7,true)", v, ok)
	}
	bq.Clear()
	if !bq.IsEmpty() {
		t.Fatal("expected empty after clear")
	}
}

// Receivers park before any value exists; every value must still be
// delivered exactly once.
func TestNoLostWakeup(t *testing.T) {
	for round := 0; round < 20; round++ {
		bq := New[int](base.FIFO)
		receivers := runtime.GOMAXPROCS(0) * 2
		perReceiver := 25
		total := receivers * perReceiver

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var wg sync.WaitGroup
		got := make(chan int, total)
		for i := 0; i < receivers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perReceiver; j++ {
					v, err := bq.Receive(ctx)
					if err != nil {
						t.Errorf("receive: %v", err)
						return
					}
					got <- v
				}
			}()
		}
		var pwg sync.WaitGroup
		producers := 4
		for p := 0; p < producers; p++ {
			pwg.Add(1)
			go func(p int) {
				defer pwg.Done()
				for i := p; i < total; i += producers {
					if err := bq.Send(i); err != nil {
						t.Errorf("send: %v", err)
					}
					if i%7 == 0 {
						runtime.Gosched()
					}
				}
			}(p)
		}
		pwg.Wait()
		wg.Wait()
		cancel()
		close(got)

		vals := make([]int, 0, total)
		for v := range got {
			vals = append(vals, v)
		}
		if len(vals) != total {
			t.Fatalf("round %d: received %d values want %d", round, len(vals), total)
		}
		sort.Ints(vals)
		for i, v := range vals {
			if v != i {
				t.Fatalf("round %d: missing or duplicate value at %d: %d", round, i, v)
			}
		}
	}
}

func TestCanceledWaiterDoesNotSwallowValue(t *testing.T) {
	bq := New[int](base.FIFO)
	short, cancelShort := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := bq.Receive(short)
		errc <- err
	}()
	got := make(chan int, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, err := bq.Receive(ctx)
		if err != nil {
			t.Errorf("receive: %v", err)
			return
		}
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	cancelShort()
	if err := <-errc; !IsContextError(err) {
		t.Fatalf("err = %v want context error", err)
	}
	_ = bq.Send(42)
	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("receive = %d want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("value lost")
	}
}
