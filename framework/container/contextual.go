package container

import "github.com/km-arc/branch/framework/resolver"

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When("PhotoController").Needs(resolver.Key[Filesystem]()).Give("fs.s3")
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// Needs specifies which abstract the concrete type depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give provides the definition used when the concrete type resolves the
// specified abstract. Any definition shape is accepted.
func (b *ContextualBuilder) Give(definition any) {
	def := resolver.Classify(definition, b.container.classes)

	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	if _, ok := b.container.contextual[b.concrete]; !ok {
		b.container.contextual[b.concrete] = make(map[string]resolver.Definition)
	}
	b.container.contextual[b.concrete][b.needs] = def
}

// GiveValue is a shorthand for Give that never treats value as a class name
// or closure.
//
//	// Laravel: ->give('/tmp/photos')
//	c.When("PhotoController").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(resolver.Literal{Value: value})
}
