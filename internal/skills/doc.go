// Package skills implements the skill visibility gate and the skill
// package catalog.
//
// A skill is a directory keyed by a category/name pair holding a
// SKILL.md manifest, optional detail files, a resources/ subtree and
// optionally an authoring-notes file that is never exposed. Skills
// become visible under /skills only after an explicit load, and the
// loaded set is cleared at the end of every agent turn so each turn's
// visible knowledge stays deterministic.
package skills
