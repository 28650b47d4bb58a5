package banyan

import (
	"runtime"
	"sync"
)

// launchInternal implements the core kernel execution logic
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	// Calculate total work items
	gridSize := grid.Size()
	blockSize := block.Size()

	// Handle edge case where grid size is zero
	if gridSize == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() {})
		return nil
	}

	// Determine parallelism strategy
	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Cache-aware scheduling: each worker processes multiple blocks
	// to maximize cache reuse
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	// Submit work to stream
	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			wID := workerID
			startBlock := wID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func() {
				defer wg.Done()

				for blockID := startBlock; blockID < endBlock; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					// Threads within a block run sequentially on the CPU.
					// The disjoint-pair partition of the comparison kernels
					// means no intra-block synchronization is ever needed.
					for threadID := 0; threadID < blockSize; threadID++ {
						threadIdx := linearTo3D(threadID, block)

						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: threadIdx,
							BlockDim:  block,
							GridDim:   grid,
						}

						kernelFunc(tid, args...)
					}
				}
			}()
		}

		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

// launchConfig returns the standard 1D grid/block split for n work items.
func launchConfig(n int) (grid, block Dim3) {
	block = Dim3{X: 256, Y: 1, Z: 1}
	grid = Dim3{X: (n + block.X - 1) / block.X, Y: 1, Z: 1}
	return grid, block
}

// launchBarrier launches fn over n 1D work items and waits for every
// lane to finish before returning. Every stage of a sorting network
// goes through here: the barrier is a correctness requirement, because
// later stages read values permuted or compared by earlier ones.
func (ctx *Context) launchBarrier(fn KernelFunc, n int) error {
	grid, block := launchConfig(n)
	if err := ctx.LaunchFunc(fn, grid, block); err != nil {
		return err
	}
	return ctx.Synchronize()
}

// ForEachUint32 applies a function to each element in parallel.
func ForEachUint32(data DevicePtr, size int, fn func(idx int, val *uint32)) error {
	slice := data.Uint32()
	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx < size {
			fn(idx, &slice[idx])
		}
	})

	return defaultContext.launchBarrier(kernel, size)
}
