package pipeline

import (
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

// Cleanup removes the archive, its checksum and the extracted files produced by
// this pipeline. The output file is kept.
func (p *Pipeline) Cleanup() {
	output := p.cfg.GetOutputPath()
	removed := 0
	for _, path := range p.produced {
		if path == output {
			continue
		}
		if err := utils.RemoveIfExists(path); err != nil {
			log.Warnf("Failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Debugf("Removed %d intermediate files", removed)
	}
	p.produced = nil
}
