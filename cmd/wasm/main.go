//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"spamlens/config"
	"spamlens/internal/adapter/memstore"
	"spamlens/internal/domain"
	"spamlens/internal/usecase"
)

var (
	store = memstore.NewMemoryStore()
	cfg   = browserConfig()
	app   *usecase.App
)

// browserConfig avoids timers and parallel batches; both would wait on the
// JS event loop while a callback holds it.
func browserConfig() *config.Config {
	c := config.DefaultConfig()
	c.Oracle.Workers = 1
	c.Oracle.Timeout = 0
	c.Explain.NumSamples = 1000
	c.Cache.Persist = false
	return c
}

func main() {
	c := make(chan struct{})

	js.Global().Set("spamlensLoadModel", js.FuncOf(loadModel))
	js.Global().Set("spamlensClassify", js.FuncOf(classify))
	js.Global().Set("spamlensExplain", js.FuncOf(explain))
	js.Global().Set("spamlensModels", js.FuncOf(listModels))

	<-c
}

func loadModel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: spamlensLoadModel(artifactJSON, [name])")
	}
	name := ""
	if len(args) > 1 {
		name = args[1].String()
	}

	info, err := usecase.ImportModel(store, []byte(args[0].String()), name)
	if err != nil {
		return makeError("import failed: " + err.Error())
	}
	cfg.Model.Name = info.Name

	artifact, err := usecase.LoadArtifact(cfg, store)
	if err != nil {
		return makeError(err.Error())
	}
	rt, err := usecase.NewRuntime(artifact, cfg)
	if err != nil {
		return makeError(err.Error())
	}
	app, err = usecase.NewApp(rt, cfg, store)
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"success": true,
		"name":    info.Name,
		"classes": info.Classes,
	})
}

func classify(this js.Value, args []js.Value) interface{} {
	if app == nil {
		return makeError("no model loaded; call spamlensLoadModel first")
	}
	if len(args) < 1 {
		return makeError("usage: spamlensClassify(message)")
	}
	pred, err := app.Classify.Classify(context.Background(), args[0].String())
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(pred)
}

func explain(this js.Value, args []js.Value) interface{} {
	if app == nil {
		return makeError("no model loaded; call spamlensLoadModel first")
	}
	if len(args) < 1 {
		return makeError("usage: spamlensExplain(message, [numFeatures], [seed])")
	}

	opts := usecase.AnalyzeOptions{}
	if len(args) > 1 {
		opts.NumFeatures = args[1].Int()
	}
	if len(args) > 2 {
		seed := uint64(args[2].Int())
		opts.Seed = &seed
	}

	an, err := app.Explain.Analyze(context.Background(), args[0].String(), opts)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(an)
}

func listModels(this js.Value, args []js.Value) interface{} {
	models, _ := store.ListModels()
	if models == nil {
		models = []domain.ModelInfo{}
	}
	return makeResult(models)
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
