package providers

import (
	_ "github.com/LJTian/FactHub/internal/ai/gemini"
	_ "github.com/LJTian/FactHub/internal/ai/openai"
)
