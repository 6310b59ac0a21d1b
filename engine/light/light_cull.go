package light

import "github.com/handsonicv4/Chocolate-3D/common"

// Grid is the screen-space tile layout of the tiled light culling pass and the compute dispatch that covers it.
type Grid struct {
	TilesX, TilesY     uint32
	BatchesX, BatchesY uint32
}

// TileGrid computes the tile counts for a resolution and the number of dispatch groups needed when every group
// processes batchSize × batchSize tiles.
//
// Parameters:
//   - width, height: screen resolution in pixels
//   - tileSize: tile edge length in pixels
//   - batchSize: tiles per dispatch group along each axis
//
// Returns:
//   - Grid: tiles = ceil(resolution / tileSize), batches = ceil(tiles / batchSize)
func TileGrid(width, height, tileSize, batchSize int) Grid {
	tx := common.CeilDiv(width, tileSize)
	ty := common.CeilDiv(height, tileSize)
	return Grid{
		TilesX:   uint32(tx),
		TilesY:   uint32(ty),
		BatchesX: uint32(common.CeilDiv(tx, batchSize)),
		BatchesY: uint32(common.CeilDiv(ty, batchSize)),
	}
}

// Tiles returns the total number of tiles.
func (g Grid) Tiles() uint32 {
	return g.TilesX * g.TilesY
}
