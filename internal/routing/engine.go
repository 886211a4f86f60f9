// Package routing selects the processor for an extracted file. The
// decision chain is fixed: an admin-declared structure wins, then
// category hints, then the structure-to-processor map, then processor
// probes, and finally the universal fallback. Every file routes
// somewhere.
package routing

import (
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/logger"
	"github.com/civictech-labs/corpusctl/internal/processors"
)

// categories that always route to the directory processor
var directoryCategories = map[string]struct{}{
	"government_officials": {},
	"contact_information":  {},
}

// structureProcessors maps structure labels to processor names.
var structureProcessors = map[domain.StructureType]string{
	domain.StructureArrayOfObjects:    "tabular",
	domain.StructureSingleObject:      "tabular",
	domain.StructureAPIResponse:       "tabular",
	domain.StructureStandardTable:     "tabular",
	domain.StructureFAQTable:          "faq_table",
	domain.StructureDirectoryFormat:   "directory",
	domain.StructureDirectoryList:     "directory",
	domain.StructureWebScrapingOutput: "web_content",
	domain.StructureArticle:           "web_content",
	domain.StructureWebContent:        "web_content",
	domain.StructureMixedContent:      "universal",
	domain.StructureUnknown:           "universal",
}

// Decision records how a file was routed.
type Decision struct {
	// Processor handles the file.
	Processor processors.Processor

	// Reason names the rule that made the choice: "declared",
	// "category", "structure", "probe" or "fallback".
	Reason string

	// Structure is the effective structure label after routing.
	Structure domain.StructureType
}

// Engine routes extractions to processors.
type Engine struct {
	byName   map[string]processors.Processor
	probes   []processors.Processor
	fallback processors.Processor
}

// NewEngine creates a routing engine over the given processors. The
// probe order follows registration order; the universal processor is
// the terminal fallback and must be registered.
func NewEngine(procs ...processors.Processor) *Engine {
	e := &Engine{byName: make(map[string]processors.Processor, len(procs))}
	for _, p := range procs {
		e.byName[p.Name()] = p
		if p.Name() == "universal" {
			e.fallback = p
			continue
		}
		e.probes = append(e.probes, p)
	}
	return e
}

// Route picks the processor for an extraction.
func (e *Engine) Route(src domain.SourceFile, ex *domain.Extraction) Decision {
	structure := detectedStructure(src, ex)

	// admin-declared structure wins outright
	if src.Structure != "" {
		if name, ok := structureProcessors[src.Structure]; ok {
			if p, ok := e.byName[name]; ok {
				logger.Debug("routing: declared structure %s -> %s", src.Structure, name)
				return Decision{Processor: p, Reason: "declared", Structure: src.Structure}
			}
		}
	}

	// category hints force the directory processor
	if _, ok := directoryCategories[src.Category]; ok {
		if p, ok := e.byName["directory"]; ok {
			logger.Debug("routing: category %s -> directory", src.Category)
			return Decision{Processor: p, Reason: "category", Structure: structure}
		}
	}

	if name, ok := structureProcessors[structure]; ok && name != "universal" {
		if p, ok := e.byName[name]; ok && p.CanProcess(src, ex) {
			logger.Debug("routing: structure %s -> %s", structure, name)
			return Decision{Processor: p, Reason: "structure", Structure: structure}
		}
	}

	for _, p := range e.probes {
		if p.CanProcess(src, ex) {
			logger.Debug("routing: probe matched %s", p.Name())
			return Decision{Processor: p, Reason: "probe", Structure: structure}
		}
	}

	logger.Debug("routing: universal fallback")
	return Decision{Processor: e.fallback, Reason: "fallback", Structure: structure}
}

func detectedStructure(src domain.SourceFile, ex *domain.Extraction) domain.StructureType {
	if ex == nil || ex.Structure == "" {
		return domain.StructureUnknown
	}
	return ex.Structure
}
