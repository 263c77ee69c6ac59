package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

type CodecFactory interface {
	// Extensions returns the lower-case file extensions (with the leading dot)
	// the codec handles.
	Extensions() []string
	NewDecoder() (types.Decoder, error)
	NewEncoder() (types.Encoder, error)
}

type codecFactoryWithPriority struct {
	Priority int
	CodecFactory
}

var codecFactoryRegistry = map[reflect.Type]codecFactoryWithPriority{}

func RegisterCodecFactory(
	priority int,
	codecFactory CodecFactory,
) {
	t := reflect.ValueOf(codecFactory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := codecFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a codec factory of type %v", t))
	}
	codecFactoryRegistry[t] = codecFactoryWithPriority{
		Priority:     priority,
		CodecFactory: codecFactory,
	}
}

func CodecFactories() []CodecFactory {
	var factoriesWithPriorities []codecFactoryWithPriority
	for _, factory := range codecFactoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		if factoriesWithPriorities[i].Priority != factoriesWithPriorities[j].Priority {
			return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
		}
		return reflect.TypeOf(factoriesWithPriorities[i].CodecFactory).String() <
			reflect.TypeOf(factoriesWithPriorities[j].CodecFactory).String()
	})

	var factories []CodecFactory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.CodecFactory)
	}

	return factories
}

// CodecFactoriesForExtension returns the factories handling the given file
// extension ordered by priority (highest first).
func CodecFactoriesForExtension(ext string) []CodecFactory {
	ext = strings.ToLower(ext)
	var result []CodecFactory
	for _, factory := range CodecFactories() {
		for _, candidate := range factory.Extensions() {
			if candidate == ext {
				result = append(result, factory)
				break
			}
		}
	}
	return result
}
