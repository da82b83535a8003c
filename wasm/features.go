package wasm

// Features is a bitset of WebAssembly proposals that gate which
// productions the tokenizer, text reader, binary decoder/encoder, and
// converter accept. Mirrors the shape of wazero's api.CoreFeatures, but
// scoped to the proposals this codec's grammar cares about (spec.md §6).
type Features uint32

const (
	FeatureMutableGlobals Features = 1 << iota
	FeatureSaturatingFloatToInt
	FeatureSignExtensionOps
	FeatureSIMD
	FeatureThreads
	FeatureExceptions
	FeatureBulkMemory
	FeatureReferenceTypes
	FeatureFunctionReferences
	FeatureTailCall
	FeatureMultiValue
	FeatureGC
)

// FeaturesMVP is the feature set with every proposal disabled: the
// WebAssembly 1.0 minimum viable product.
const FeaturesMVP Features = 0

// FeaturesDefault mirrors the set most consumers expect enabled by
// default: the three that shipped as "phase 4" proposals widely adopted
// before this codec was written.
const FeaturesDefault = FeatureMutableGlobals | FeatureSaturatingFloatToInt | FeatureSignExtensionOps

// IsEnabled reports whether every bit in f is set in the receiver.
func (fs Features) IsEnabled(f Features) bool {
	return fs&f == f
}

// WithEnabled returns a copy of fs with f set (or cleared), applying the
// implication chain: gc implies function-references implies
// reference-types implies bulk-memory (spec.md §6).
func (fs Features) WithEnabled(f Features, enabled bool) Features {
	if enabled {
		fs |= f
		if f&FeatureGC != 0 {
			fs |= FeatureFunctionReferences
		}
		if fs&FeatureFunctionReferences != 0 {
			fs |= FeatureReferenceTypes
		}
		if fs&FeatureReferenceTypes != 0 {
			fs |= FeatureBulkMemory
		}
		return fs
	}
	fs &^= f
	return fs
}

// featureNames is used by the tokenizer/catalog to render "requires
// feature X" diagnostics and to parse --enable-<feature> style names from
// embedding CLIs (informative, spec.md §6).
var featureNames = map[Features]string{
	FeatureMutableGlobals:       "mutable-globals",
	FeatureSaturatingFloatToInt: "saturating-float-to-int",
	FeatureSignExtensionOps:     "sign-extension",
	FeatureSIMD:                 "simd",
	FeatureThreads:              "threads",
	FeatureExceptions:           "exceptions",
	FeatureBulkMemory:           "bulk-memory",
	FeatureReferenceTypes:       "reference-types",
	FeatureFunctionReferences:   "function-references",
	FeatureTailCall:             "tail-call",
	FeatureMultiValue:           "multi-value",
	FeatureGC:                   "gc",
}

// String returns the feature's textual name, or "unknown" if f is not a
// single known flag.
func (f Features) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown"
}
