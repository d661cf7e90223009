package easel

// Dispose tears the canvas down. A scheduled render is cancelled; a render
// in progress is allowed to finish and teardown follows it. The returned
// channel is closed once the canvas is disposed. Repeated calls return the
// same channel.
func (c *StaticCanvas) Dispose() <-chan struct{} {
	if c.disposeDone != nil {
		return c.disposeDone
	}
	c.disposeDone = make(chan struct{})
	c.CancelRequestedRender()
	c.cancelLoad()
	if c.phase == renderPainting {
		c.disposeQueued = true
		logger().Debug("disposal deferred until render completes")
		return c.disposeDone
	}
	c.destroy()
	return c.disposeDone
}

// destroy releases every object and the surfaces. Painting afterwards is a
// no-op.
func (c *StaticCanvas) destroy() {
	if c.disposed {
		return
	}
	c.disposeQueued = false
	c.disposed = true
	c.CancelRequestedRender()
	if c.interactive != nil {
		c.interactive.destroyInteraction()
	}
	objs := c.objects
	c.objects = nil
	for _, o := range objs {
		o.dispose()
	}
	for _, o := range []*Object{c.BackgroundImage, c.OverlayImage, c.ClipPath} {
		if o != nil {
			o.dispose()
		}
	}
	c.BackgroundImage, c.OverlayImage, c.ClipPath = nil, nil, nil
	c.lower.Clear()
	_ = c.lower.Close()
	c.Fire("canvas:disposed", &Event{})
	c.Off("")
	if c.disposeDone == nil {
		c.disposeDone = make(chan struct{})
	}
	close(c.disposeDone)
	logger().Debug("canvas disposed")
}
