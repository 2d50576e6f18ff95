package article

import "workshophub/internal/gateway/entity"

// SeedArticles is the feed a fresh store starts with.
var SeedArticles = []entity.Article{
	{
		ID:       "3",
		Title:    "[Video] Prompt Engineering Masterclass",
		Excerpt:  "A ten-minute hands-on lesson on using Chain-of-Thought to raise answer quality.",
		Category: entity.CategoryPromptEngineering,
		Author:   "AI Coach",
		Date:     "2024-06-01",
		ImageURL: DefaultImageURL,
		VideoURL: "https://www.youtube.com/watch?v=jC4v5AS4RIM",
		Content: `## Video summary

In this lesson we cover:

1. **Few-shot prompting**: steer the model with examples.
2. **Chain-of-Thought**: have the model show its reasoning to cut hallucinations.
3. **Role prompting**: give the model a precise persona.

### Why learn prompt engineering?
Prompting is less about phrasing and more about working with how the model is built. A good prompt lifts a model from 60% of its potential to well above 95%.`,
	},
	{
		ID:       "1",
		Title:    "Antigravity from Zero to Expert",
		Excerpt:  "How to use Antigravity to streamline your daily development flow and visual work.",
		Category: entity.CategoryTutorial,
		Author:   "AI Expert",
		Date:     "2024-05-15",
		ImageURL: "https://picsum.photos/seed/antigravity/800/450",
		Content: `## What is Antigravity?
Antigravity is an AI assistant built for creative work. It helps you generate complex scenes and objects quickly.

### Core features
1. **Live render feedback**: change a parameter and see it immediately.
2. **Object controls**: fine-grained control over every element in the scene.`,
	},
	{
		ID:       "2",
		Title:    "Writing High-Quality Prompts for Gemini",
		Excerpt:  "The core techniques of prompt engineering that turn Gemini into your strongest assistant.",
		Category: entity.CategoryPromptEngineering,
		Author:   "Prompt Master",
		Date:     "2024-05-20",
		ImageURL: "https://picsum.photos/seed/gemini/800/450",
		Content: `## Three pillars of prompt engineering
To get precise answers from Gemini you need to learn how to structure a request.`,
	},
}
