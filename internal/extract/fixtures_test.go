package extract

const ureasePage = `<!DOCTYPE html>
<html><body><main><div>
<h2>ENZYME entry: EC 3.5.1.5</h2>
<table class="type-2">
<tr><th>Accepted Name</th></tr>
<tr><td><strong>urease</strong></td></tr>
<tr><th>Alternative Name(s)</th></tr>
<tr><td>urea amidohydrolase</td></tr>
<tr><td>urease (nickel)</td></tr>
<tr><th>Reaction catalysed</th></tr>
<tr><td>urea + H<sub>2</sub>O = CO<sub>2</sub> + 2 NH<sub>3</sub></td></tr>
<tr><td>PROSITE</td><td><a href="https://prosite.expasy.org/PS01120">PS01120</a></td></tr>
<tr><td>UniProtKB/Swiss-Prot</td><td>
  <a href="https://www.uniprot.org/uniprot/P07374">P07374, URE1_CANEN</a>;
  <a href="https://prosite.expasy.org/PDOC00133">PDOC00133</a>
  <a href="https://www.uniprot.org/uniprot/P41020/">P41020, URE1_BACPA</a>;
</td></tr>
</table>
</div></main></body></html>`

const deletedPage = `<html><body><main><div>
<table>
<tr><th>Accepted Name</th></tr>
<tr><td>Deleted entry</td></tr>
<tr><td>UniProtKB/Swiss-Prot</td><td></td></tr>
</table>
</div></main></body></html>`

const transferredPage = `<html><body><main><div>
<h2>ENZYME entry: EC 1.1.1.5</h2>
<h3>Transferred entry: <a href="/EC/1.1.1.303">1.1.1.303</a></h3>
</div></main></body></html>`

const emptyPage = `<html><body><main><div><p>Nothing to see.</p></div></main></body></html>`

const nameSearchPage = `<html><body><main><div>
<table class="type-1">
<tr><th>EC</th><th>Name</th></tr>
<tr><td><a href="/EC/3.5.1.5">3.5.1.5</a></td><td>
 - urease
 - urea amidohydrolase
</td></tr>
<tr><td><a href="/EC/3.5.1.116">3.5.1.116</a></td><td>
 - ureidoglycolate amidohydrolase
</td></tr>
</table>
</div></main></body></html>`

const noNamePage = `<html><body><main><div>
<p>No ENZYME entry was found with name containing 'zzz'.</p>
</div></main></body></html>`

const rheaSearchPage = `<html><body>
<a href="/rhea/?query=uniprot:P07374">permalink</a>
<table>
<tr><td><a href="/rhea/20557">RHEA:20557</a></td></tr>
<tr><td><a href="https://www.rhea-db.org/rhea/10000">RHEA:10000</a></td></tr>
<tr><td><a href="/rhea/20557">again</a></td></tr>
</table>
</body></html>`

const reactionPage = `<html><body>
<div id="equationtext">urea + 2 H<sup>+</sup> + H2O = CO2 + 2 NH4<sup>+</sup></div>
<div class="reaction-participants"><ul>
<li class="participant"><span class="cell">Name</span><span class="cell">urea</span><span class="cell">SMILES</span><span class="cell">NC(N)=O</span></li>
<li class="participant"><span class="cell">Name</span><span class="cell">H+</span><span class="cell">SMILES</span><span class="cell">[H+]</span></li>
<li class="participant"><span class="cell">Name</span><span class="cell">H2O</span><span class="cell">SMILES</span><span class="cell">[H]O[H]</span></li>
<li class="participant"><span class="cell">Name</span><span class="cell">CO2</span><span class="cell">SMILES</span><span class="cell">O=C=O</span></li>
<li class="participant"><span class="cell">Name</span><span class="cell">polymer</span></li>
</ul></div>
</body></html>`

const uniprotTSV = "Entry\tEntry Name\tProtein names\tGene Names\tEC number\tOrganism\tOrganism (ID)\tSequence\tLength\tRefSeq\tReviewed\n" +
	"P07374\tURE1_CANEN\tUrease (EC 3.5.1.5) (Urea amidohydrolase)\t\t3.5.1.5\tCanavalia ensiformis (Jack bean)\t3823\tMKLSPREVEK\t840\tNP_001.1;\treviewed\n"
