package main

import (
	"github.com/architeacher/svc-order-outbox/internal/runtime"
)

func main() {
	runtime.NewRelay().Run()
}
