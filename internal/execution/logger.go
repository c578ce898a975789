package execution

import "vibe-cli/internal/logger"

var errorLog = logger.Named("execution")
