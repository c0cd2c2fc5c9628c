package host

import (
	"testing"
	"time"
)

func TestTickerSchedulerCloses(t *testing.T) {
	select {
	case <-TickerScheduler{Interval: time.Millisecond}.NextTick():
	case <-time.After(time.Second):
		t.Fatal("tick never arrived")
	}
}

func TestTickerSchedulerZeroIntervalIsImmediate(t *testing.T) {
	select {
	case <-TickerScheduler{}.NextTick():
	default:
		t.Fatal("expected closed channel")
	}
}

func TestNotifierFunc(t *testing.T) {
	var got string
	var gotErr bool
	NotifierFunc(func(message string, isError bool) {
		got, gotErr = message, isError
	}).Notify("saved", false)
	if got != "saved" || gotErr {
		t.Fatalf("unexpected notification %q %v", got, gotErr)
	}
}
