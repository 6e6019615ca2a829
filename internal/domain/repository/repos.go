package repository

// Repos conjunto de repositorios atados a una misma transacción (o al pool para lecturas).
type Repos struct {
	Companies      CompanyRepository
	Products       ProductRepository
	Warehouses     WarehouseRepository
	Balances       StockRepository
	Kardex         KardexRepository
	Lots           CostLotRepository
	Movements      MovementRepository
	Sequences      SequenceRepository
	Quotations     QuotationRepository
	PurchaseOrders PurchaseOrderRepository
	Requisitions   RequisitionRepository
	ExitVouchers   ExitVoucherRepository
	EppAssignments EppAssignmentRepository
	Equipment      EquipmentRepository
	Loans          EquipmentLoanRepository

	afterCommit func(fn func())
}

// WithAfterCommit asocia el registro de funciones post-commit de la transacción.
func (r Repos) WithAfterCommit(register func(fn func())) Repos {
	r.afterCommit = register
	return r
}

// AfterCommit ejecuta fn solo si la transacción confirma. Fuera de una transacción se ejecuta de inmediato.
func (r Repos) AfterCommit(fn func()) {
	if r.afterCommit == nil {
		fn()
		return
	}
	r.afterCommit(fn)
}
