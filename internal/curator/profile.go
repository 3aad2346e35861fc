package curator

import (
	"fmt"
	"strings"
)

// Profile describes the reader the curator ranks for.
type Profile struct {
	Name           string      `yaml:"name" json:"name"`
	Title          string      `yaml:"title" json:"title"`
	Background     string      `yaml:"background" json:"background"`
	ExpertiseLevel string      `yaml:"expertise_level" json:"expertise_level"`
	Interests      []string    `yaml:"interests" json:"interests"`
	Preferences    Preferences `yaml:"preferences" json:"preferences"`
}

type Preferences struct {
	PreferPractical             bool `yaml:"prefer_practical" json:"prefer_practical"`
	PreferTechnicalDepth        bool `yaml:"prefer_technical_depth" json:"prefer_technical_depth"`
	PreferResearchBreakthroughs bool `yaml:"prefer_research_breakthroughs" json:"prefer_research_breakthroughs"`
	PreferProductionFocus       bool `yaml:"prefer_production_focus" json:"prefer_production_focus"`
	AvoidMarketingHype          bool `yaml:"avoid_marketing_hype" json:"avoid_marketing_hype"`
}

// DefaultProfile is the ranking persona used when no per-user profile exists.
// The name is substituted per subscriber at email time.
func DefaultProfile(name string) Profile {
	if name == "" {
		name = "User"
	}
	return Profile{
		Name:           name,
		Title:          "AI/ML Engineer & Researcher",
		Background:     "Experienced AI/ML engineer with deep interest in practical AI applications, research breakthroughs, and production-ready systems",
		ExpertiseLevel: "Advanced",
		Interests: []string{
			"Large Language Models (LLMs) and their applications",
			"Retrieval-Augmented Generation (RAG) systems",
			"AI agent architectures and autonomous workflows",
			"Multimodal models (vision-language, audio-language, VLMs)",
			"Machine learning systems and scalable training pipelines",
			"Deep learning architectures and optimization techniques",
			"Diffusion models and generative modeling",
			"Self-supervised learning and representation learning",
			"Reinforcement learning and RLHF/RLAIF",
			"Neural scaling laws and model efficiency research",
			"Model distillation, quantization, pruning, and compression",
			"Continual learning and adaptive inference",
			"Vector databases, embeddings, and semantic retrieval",
			"Evaluation methods for LLMs, agents, and RAG systems",
			"AI safety, alignment, robustness, and interpretability",
			"Systems-level AI: compilers, kernels, and model serving",
			"High-performance inference (GPU, TPU, accelerated runtimes)",
			"MLOps, production deployments, monitoring, and infra",
			"Distributed training and large-scale model optimization",
			"Research papers with real-world implementation value",
			"Case studies of AI in production at scale",
			"Benchmarking, dataset engineering, and synthetic data",
			"Foundation model fine-tuning, adapters, and LoRA variants",
		},
		Preferences: Preferences{
			PreferPractical:             true,
			PreferTechnicalDepth:        true,
			PreferResearchBreakthroughs: true,
			PreferProductionFocus:       true,
			AvoidMarketingHype:          true,
		},
	}
}

// render formats the profile as the prompt section the curator sees.
func (p Profile) render() string {
	var interests strings.Builder
	for _, interest := range p.Interests {
		fmt.Fprintf(&interests, "- %s\n", interest)
	}

	prefs := fmt.Sprintf(
		"- prefer_practical: %t\n- prefer_technical_depth: %t\n- prefer_research_breakthroughs: %t\n- prefer_production_focus: %t\n- avoid_marketing_hype: %t",
		p.Preferences.PreferPractical,
		p.Preferences.PreferTechnicalDepth,
		p.Preferences.PreferResearchBreakthroughs,
		p.Preferences.PreferProductionFocus,
		p.Preferences.AvoidMarketingHype,
	)

	return fmt.Sprintf(`User Profile:
Name: %s
Background: %s
Expertise Level: %s

Interests:
%s
Preferences:
%s`, p.Name, p.Background, p.ExpertiseLevel, interests.String(), prefs)
}
