// Package runtime wires configuration, storage, metrics and logging into a
// single block-feeder instance. It exposes Open/Close, a basic health check,
// and OpenStore which hands out the log store selected by the config.
//
// Example:
//
//	cfg := config.Default()
//	cfg.DataDir = "./data"
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	store, _ := rt.OpenStore(context.Background())
//	_, _ = store.Append(context.Background(), logstore.Field{Name: "7-0", Value: []byte("abc")})
package runtime
