// Package xraytl prepares game string tables for machine translation.
//
// It splits entity text into translatable and protected spans (placeholders,
// script variables, action macros, line breaks), repairs malformed string
// table XML so it can be parsed, picks a fallback source language per entity
// and drives a pluggable translation backend with caching.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/xraytl"
//	    "github.com/ZaguanLabs/xraytl/cache"
//	    "github.com/ZaguanLabs/xraytl/processor"
//	    "github.com/ZaguanLabs/xraytl/provider"
//	)
//
//	func main() {
//	    b := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    t := xraytl.NewTranslator("eng", b,
//	        xraytl.WithCache(cache.NewInMemoryCache(3600)),
//	        xraytl.WithProcessor(processor.NewStringTableProcessor()),
//	    )
//
//	    result, err := t.Process(context.Background(), doc, processor.ContentTypeStringTable)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content)
//	}
package xraytl
